package inmem

import (
	"testing"

	"github.com/trezcool/reportcard/storage/kv/kvtest"
)

func TestStore(t *testing.T) {
	a := NewStore("a_")
	kvtest.Run(t, a, a.Shared("b_"))
}
