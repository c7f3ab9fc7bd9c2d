package tree

import "treescroll/internal/logger"

var log = logger.Named("tree")
