package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu     sync.Mutex
	node   *snowflake.Node
	nodeID int64
)

// Init initializes the snowflake node with the given node ID.
// Node ID should be unique across all instances (0-1023). Calling Init again
// with the current node ID keeps the running sequence.
func Init(id int64) error {
	mu.Lock()
	defer mu.Unlock()
	if node != nil && nodeID == id {
		return nil
	}
	n, err := snowflake.NewNode(id)
	if err != nil {
		return err
	}
	node, nodeID = n, id
	return nil
}

// NextID generates a new unique snowflake ID. Node 1 is used when Init was
// never called.
func NextID() int64 {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(1)
		nodeID = 1
	}
	n := node
	mu.Unlock()
	return n.Generate().Int64()
}
