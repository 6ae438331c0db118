package coneindexupdater

import "github.com/tanglenet/tangled/infrastructure/logger"

var log = logger.RegisterSubSystem("CONE")
