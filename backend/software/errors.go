package software

import "errors"

var errMissingAtlas = errors.New("software: textured draw without an atlas at group 0 binding 1")
