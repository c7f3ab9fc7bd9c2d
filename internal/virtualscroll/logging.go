package virtualscroll

import "treescroll/internal/logger"

var log = logger.Named("virtualscroll")
