package cmd

// Version is reported by the ping route and --version.
const Version = "0.1.0"
