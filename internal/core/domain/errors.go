package domain

import "errors"

// Fatal pre-flight and setup errors. Any of these aborts the run.
var (
	ErrPrivilege      = errors.New("root privileges required")
	ErrToolNotFound   = errors.New("required tool not found")
	ErrInterfaceSetup = errors.New("no monitor-capable interface could be established")
)

// Scan parse errors. These never leave the network scanner; they select
// the next scan strategy instead.
var (
	ErrScanParse      = errors.New("scan output could not be parsed")
	ErrNoArtifact     = errors.New("scan produced no artifact")
	ErrHeaderNotFound = errors.New("network header not found")
	ErrUndecodable    = errors.New("artifact could not be decoded")
)

// Record validation errors.
var (
	ErrInvalidBSSID   = errors.New("invalid BSSID")
	ErrInvalidESSID   = errors.New("invalid ESSID")
	ErrInvalidMAC     = errors.New("invalid MAC address")
	ErrInvalidChannel = errors.New("invalid channel")
)

// ErrInvalidTransition is returned when a network attack is moved to a
// state its current state cannot reach.
var ErrInvalidTransition = errors.New("invalid attack state transition")
