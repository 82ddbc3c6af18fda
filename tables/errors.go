/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tables

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a table code or catalog name did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInternal covers catalog I/O failures and code collisions. Its
	// details are never shown to clients.
	ErrInternal = errors.New("internal error")
	// ErrPreconditionFailed marks an update that was valid but could not
	// apply to the current table state.
	ErrPreconditionFailed = errors.New("precondition failed")
)

var (
	ErrCodeCollision     = fmt.Errorf("%w: table code already in use", ErrInternal)
	ErrElementNotFound   = fmt.Errorf("%w: element does not exist", ErrPreconditionFailed)
	ErrIconPackNotLoaded = fmt.Errorf("%w: icon pack not loaded", ErrPreconditionFailed)
	ErrIconPackLoaded    = fmt.Errorf("%w: icon pack already loaded", ErrPreconditionFailed)
	ErrInertAction       = fmt.Errorf("%w: actions are not implemented", ErrPreconditionFailed)
	ErrTableNotFound     = fmt.Errorf("%w: table", ErrNotFound)

	ErrMalformedUpdate = errors.New("malformed update")
	ErrUnknownUpdate   = fmt.Errorf("%w: unknown type", ErrMalformedUpdate)
)
