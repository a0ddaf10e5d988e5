package runsweep

const (
	commandType = "RunSweep"
)

// Command asks for one sweep. The sweep takes its "now" from the engine's clock.
type Command struct{}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand() Command {
	return Command{}
}
