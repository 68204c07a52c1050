// Package constants defines application-wide constants and version information.
package constants

// Version holds the application version information. This is set at build time via -ldflags.
var Version = "1.4.0"

// CommitID holds the git commit hash. This is set at build time via -ldflags.
var CommitID = "unknown"

// FirmwareName is the product name. GetDeviceInfo and link.DeviceName do not read it;
// link.DeviceName writes the same "PlantMonitor" prefix itself.
const FirmwareName = "PlantMonitor"

// DataStructureVersion tags the composite sample format carried over the link.
const DataStructureVersion = 1
