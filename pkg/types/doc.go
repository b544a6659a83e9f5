// Package types defines the domain entities, the Store and Table storage
// interfaces, the backup manifest shapes, and the standard errors shared by
// every component of the grooming CRM core.
package types
