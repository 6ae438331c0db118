package metrics

import (
	"github.com/tanglenet/tangled/infrastructure/logger"
	"github.com/tanglenet/tangled/util/panics"
)

var log = logger.RegisterSubSystem("MTRC")
var spawn = panics.GoroutineWrapperFunc(log)
