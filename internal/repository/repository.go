package repository

import "errors"

// Package repository contains the process-wide state stores.
// Implementations live in subpackages (e.g., memory) inside this directory.

// ErrNotFound is returned when a lookup key does not resolve.
var ErrNotFound = errors.New("not found")

// ErrDuplicateID is returned when a record with the same id already exists.
var ErrDuplicateID = errors.New("duplicate id")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
