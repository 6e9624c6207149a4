package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the metrics store.
	DatabaseBackend string

	// GitBackend selects how the repository is read.
	GitBackend string

	// SmellCode is one of the community smell categories predicted per batch.
	SmellCode string

	// Stream names a remote collaboration stream.
	Stream string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All git backends supported.
const (
	LocalGit GitBackend = "local" // default, shells out to git
	GoGit    GitBackend = "gogit"
)

// Community smell vocabulary.
const (
	OrganizationalSilo     SmellCode = "OSE"
	BlackCloud             SmellCode = "BCE"
	PrimaDonna             SmellCode = "PDE"
	SharingVillainy        SmellCode = "SV"
	OrganizationalSkirmish SmellCode = "OS"
	SoloDeveloper          SmellCode = "SD"
	RadioSilence           SmellCode = "RS"
	TruckFactor            SmellCode = "TF"
	UnhealthyInteraction   SmellCode = "UI"
	ToxicCommunication     SmellCode = "TC"
)

// Collaboration streams fetched from the remote source.
const (
	PullRequests Stream = "PR"
	Issues       Stream = "Issue"
)

// AllSmells lists the smell vocabulary in classifier output order.
var AllSmells = []SmellCode{
	OrganizationalSilo, BlackCloud, PrimaDonna, SharingVillainy, OrganizationalSkirmish,
	SoloDeveloper, RadioSilence, TruckFactor, UnhealthyInteraction, ToxicCommunication,
}

// SmellDescriptions gives a human label for each smell code.
var SmellDescriptions = map[SmellCode]string{
	OrganizationalSilo:     "Organizational Silo",
	BlackCloud:             "Black Cloud",
	PrimaDonna:             "Prima Donnas",
	SharingVillainy:        "Sharing Villainy",
	OrganizationalSkirmish: "Organizational Skirmish",
	SoloDeveloper:          "Solo Developer",
	RadioSilence:           "Radio Silence",
	TruckFactor:            "Truck Factor",
	UnhealthyInteraction:   "Unhealthy Interaction",
	ToxicCommunication:     "Toxic Communication",
}

// ValidSmells is the closed smell vocabulary.
var ValidSmells = map[SmellCode]struct{}{
	OrganizationalSilo:     {},
	BlackCloud:             {},
	PrimaDonna:             {},
	SharingVillainy:        {},
	OrganizationalSkirmish: {},
	SoloDeveloper:          {},
	RadioSilence:           {},
	TruckFactor:            {},
	UnhealthyInteraction:   {},
	ToxicCommunication:     {},
}

// ValidStreams lists the collaboration streams.
var ValidStreams = map[Stream]struct{}{
	PullRequests: {},
	Issues:       {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidGitBackends lists all valid git backends.
var ValidGitBackends = map[GitBackend]struct{}{
	LocalGit: {},
	GoGit:    {},
}
