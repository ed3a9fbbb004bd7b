package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

const (
	environmentVariablePort             = "PORT"
	environmentVariableMongoURL         = "DATABASE_URL"
	environmentVariablePostgresURL      = "POSTGRES_URL"
	environmentVariableFirestoreProject = "FIRESTORE_PROJECT_ID"
	environmentVariableAdminKey         = "ADMIN_KEY"
	environmentVariableDebugGame        = "DEBUG_MESSAGES"
)

// mainFlags are the configuration options which can be easily configured at
// run startup for different environments.
type mainFlags struct {
	port             int
	mongoURL         string
	postgresURL      string
	firestoreProject string
	adminKey         string
	debugGame        bool
}

const defaultPort = 8080

// usage prints how to run the server to the flagset's output.
func usage(fs *flag.FlagSet) {
	envVars := []string{
		environmentVariablePort,
		environmentVariableMongoURL,
		environmentVariablePostgresURL,
		environmentVariableFirestoreProject,
		environmentVariableAdminKey,
		environmentVariableDebugGame,
	}
	fmt.Fprintf(fs.Output(), "Runs the server\n")
	fmt.Fprintf(fs.Output(), "Reads environment variables when possible: [%s]\n", strings.Join(envVars, ","))
	fmt.Fprintf(fs.Output(), "Usage of %s:\n", fs.Name())
	fs.PrintDefaults()
}

// newFlagSet creates a flagSet that populates the specified mainFlags.
func (m *mainFlags) newFlagSet(osLookupEnvFunc func(string) (string, bool)) *flag.FlagSet {
	fs := flag.NewFlagSet("main", flag.ExitOnError)
	fs.Usage = func() {
		usage(fs) // [lazy evaluation]
	}
	envValue := func(key string) string {
		if envValue, ok := osLookupEnvFunc(key); ok {
			return envValue
		}
		return ""
	}
	envValueInt := func(key string, defaultValue int) int {
		v1 := envValue(key)
		v2, err := strconv.Atoi(v1)
		if err != nil {
			return defaultValue
		}
		return v2
	}
	envPresent := func(key string) bool {
		_, ok := osLookupEnvFunc(key)
		return ok
	}
	fs.IntVar(&m.port, "port", envValueInt(environmentVariablePort, defaultPort), "The TCP port to serve websockets and health endpoints on.")
	fs.StringVar(&m.mongoURL, "mongo-url", envValue(environmentVariableMongoURL), "The mongodb connection URI for mirroring room state.  Takes precedence over other stores.")
	fs.StringVar(&m.postgresURL, "postgres-url", envValue(environmentVariablePostgresURL), "The PostgreSQL connection URI for mirroring room state.")
	fs.StringVar(&m.firestoreProject, "firestore-project", envValue(environmentVariableFirestoreProject), "The google cloud project id for mirroring room state to firestore.")
	fs.StringVar(&m.adminKey, "admin-key", envValue(environmentVariableAdminKey), "The key required by admin endpoints.  When empty, admin endpoints reject every request.")
	fs.BoolVar(&m.debugGame, "debug-game", envPresent(environmentVariableDebugGame), "Logs every event the gateway handles.")
	return fs
}

// newMainFlags creates a new, populated mainFlags structure.
// Fields are populated from command line arguments.
// If fields are not specified on the command line, environment variable values
// are used before defaulting to other defaults.
func newMainFlags(osArgs []string, osLookupEnvFunc func(string) (string, bool)) mainFlags {
	if len(osArgs) == 0 {
		osArgs = []string{""}
	}
	programArgs := osArgs[1:]
	var m mainFlags
	fs := m.newFlagSet(osLookupEnvFunc)
	fs.Parse(programArgs)
	return m
}
