package debug

import (
	"os"
	"strconv"
	"sync/atomic"
)

type debug struct {
	Eval     atomic.Bool
	Scope    atomic.Bool
	Navigate atomic.Bool
	Suite    atomic.Bool
}

var d = &debug{}

func init() {
	d.Eval.Store(boolEnv("AQL_DEBUG_EVAL"))
	d.Scope.Store(boolEnv("AQL_DEBUG_SCOPE"))
	d.Navigate.Store(boolEnv("AQL_DEBUG_NAVIGATE"))
	d.Suite.Store(boolEnv("AQL_DEBUG_SUITE"))
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// EnableAll turns every switch on, as the CLI's -v flag does.
func EnableAll() {
	d.Eval.Store(true)
	d.Scope.Store(true)
	d.Navigate.Store(true)
	d.Suite.Store(true)
}

func Eval() bool {
	return d.Eval.Load()
}
func Scope() bool {
	return d.Scope.Load()
}
func Navigate() bool {
	return d.Navigate.Load()
}
func Suite() bool {
	return d.Suite.Load()
}
