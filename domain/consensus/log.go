package consensus

import (
	"github.com/tanglenet/tangled/infrastructure/logger"
	"github.com/tanglenet/tangled/util/panics"
)

var log = logger.RegisterSubSystem("CNSS")
var spawn = panics.GoroutineWrapperFunc(log)
