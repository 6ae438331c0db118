// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklogger

import (
	"github.com/tanglenet/tangled/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BPRC")
