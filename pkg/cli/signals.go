package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM, the
// signals the platform's process supervisors send on redeploy. The stop
// function releases the registration; once the context is cancelled a second
// signal falls through to the default handler and kills the process, which
// gives operators a hard exit when a drain hangs on a long agent run.
func SetupSignalHandler() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
