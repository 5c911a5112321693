// Package logging wires commonlog for the intcode binaries.
package logging

import (
	"sync"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var once sync.Once

// Configure sets process-wide verbosity and an optional log file. Verbosity
// follows commonlog: 0 is notice, 1 info, 2 debug, negative values are
// quieter. Only the first call takes effect.
func Configure(verbosity int, file string) {
	once.Do(func() {
		var path *string
		if file != "" {
			path = &file
		}
		commonlog.Configure(verbosity, path)
	})
}

func Get(name string) commonlog.Logger {
	return commonlog.GetLogger("intcode." + name)
}
