package idgen

import (
	"log"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// Init menyiapkan node Snowflake. Hanya panggilan pertama yang berlaku.
func Init(nodeID int64) {
	nodeOnce.Do(func() {
		var err error
		node, err = snowflake.NewNode(nodeID)
		if err != nil {
			log.Fatalf("Failed to init Snowflake: %v", err)
		}
	})
}

// GenerateID tetap aman dipanggil tanpa Init (misalnya dari test), node 1 dipakai.
func GenerateID() int64 {
	Init(1)
	return node.Generate().Int64()
}
