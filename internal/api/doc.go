// Package api contains the HTTP handlers, request/response models, and
// error mapping for the task management API. It adapts HTTP concerns to the
// internal stores and services without holding business logic of its own.
package api
