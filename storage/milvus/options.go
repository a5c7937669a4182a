package milvus

import (
	"errors"
	"time"
)

// Options contains Milvus connection and collection settings.
type Options struct {
	// Address is the Milvus server address (host:port).
	Address string

	// Database is the database name to use.
	Database string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// Timeout bounds connection setup.
	Timeout time.Duration

	// Dimension of the embedding field. Zero means take it from the first
	// batch written to a new collection.
	Dimension int
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Address:  "localhost:19530",
		Database: "default",
		Timeout:  30 * time.Second,
	}
}

// Validate validates the options.
func (o *Options) Validate() error {
	if o == nil {
		return errors.New("milvus options is nil")
	}

	var errs []error
	if o.Address == "" {
		errs = append(errs, errors.New("milvus address is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, errors.New("milvus timeout must be positive"))
	}
	if o.Dimension < 0 {
		errs = append(errs, errors.New("milvus dimension must not be negative"))
	}
	return errors.Join(errs...)
}
