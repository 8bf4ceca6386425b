package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/netpong/internal/dependencies/random"
	"github.com/mcoot/netpong/internal/protocol"
)

type gameFlags struct {
	password    string
	autoplay    bool
	idleTimeout time.Duration
}

func (f *gameFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "Game password")
	cmd.Flags().BoolVar(&f.autoplay, "autoplay", false, "Move the paddle to follow the ball")
	cmd.Flags().DurationVar(&f.idleTimeout, "idle-timeout", 5*time.Second, "Give up on a match that stops sending frames (0 waits forever)")
}

func newCreateCmd() *cobra.Command {
	var flags gameFlags

	cmd := &cobra.Command{
		Use:   "create [game-id]",
		Short: "Create a game and play it once an opponent joins",
		Long:  "Create a game and wait for an opponent. A random game id is chosen when none is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playGame(cmd, protocol.CreateGame(resolveGameID(args, rng), flags.password), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newJoinCmd() *cobra.Command {
	var flags gameFlags

	cmd := &cobra.Command{
		Use:   "join <game-id>",
		Short: "Join a waiting game and play it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playGame(cmd, protocol.JoinGame(args[0], flags.password), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// resolveGameID returns the id given on the command line, or a random one
func resolveGameID(args []string, r random.Random) string {
	if len(args) > 0 {
		return args[0]
	}
	return random.GameID(r)
}

func playGame(cmd *cobra.Command, first protocol.Command, flags gameFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dialer net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, err := dialer.DialContext(dialCtx, "tcp", cfg.ServerAddr)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.ServerAddr, err)
	}
	defer conn.Close()

	out := NewOutput(cfg.Output, cmd.OutOrStdout())
	session := NewSession(conn, out, SessionOptions{
		Autoplay:    flags.autoplay,
		Verbose:     cfg.Verbose,
		IdleTimeout: flags.idleTimeout,
	})

	result, err := session.Run(ctx, first)
	if err != nil {
		if ctx.Err() != nil {
			out.PrintMessage("Left the game.")
			return nil
		}
		return err
	}
	out.Print(result)
	return nil
}
