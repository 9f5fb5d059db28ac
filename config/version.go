package config

const (

	// Title represents the name of this tool.
	Title string = "OCDB-Query"

	// Description represents a short description of this tool.
	Description string = "A web service for parsing, validating and evaluating catalog search expressions."
)

// Version represents the SemVer of the server.
var Version = "[unset]"

// Buildtime represents the timestamp of the build.
var Buildtime = "[unset]"

// Buildhash represents a unique hash of the build.
var Buildhash = "[unset]"
