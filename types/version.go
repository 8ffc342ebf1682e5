package types

// Version is the canonical project version.
// The CLI, the lifecycle event payloads, and the gateway User-Agent all
// report this value.
const Version = "0.3.0"

// ContractVersion is the lifecycle event contract version.
// It moves in lockstep with Version.
const ContractVersion = Version
