package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for domain operations
var (
	ErrLoad             = goerr.New("failed to load dataset")
	ErrLayoutNotReady   = goerr.New("layout not ready")
	ErrEmptySelection   = goerr.New("no records for selection")
	ErrUnknownChartKind = goerr.New("unknown chart kind")
)
