package ledgerstore

import "github.com/tanglenet/tangled/infrastructure/logger"

var log = logger.RegisterSubSystem("LDGR")
