package supervisor

// Config is the plain, already-resolved configuration the supervisor
// needs to operate. Populating it from CLI flags or a TOML file is the
// excluded collaborator's job; this package only
// ever consumes an already-built Config.
type Config struct {
	// WorkerExecPath is the path to the unprivileged worker binary,
	// typically this same binary re-invoked with --child-process.
	WorkerExecPath string
	WorkerArgs     []string
	Identity       WorkerIdentity

	// KeyDirectory holds the signed-token key files the parent serves
	// in response to REQUEST_KEY.
	KeyDirectory string

	// PasswdPath and GroupPath feed the UID/GID name cache.
	PasswdPath string
	GroupPath  string
}
