package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/squareup/shardnode/errors"
	"github.com/squareup/shardnode/node"
	"github.com/squareup/shardnode/statement"
)

// runShell drives the node in-process from an interactive prompt. There
// is no wire protocol at this layer, so the shell talks straight to the
// node.Manager rather than through a client connection.
func runShell(mgr *node.Manager) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return errors.WithStack(err)
	}

	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:            filepath.Join(home, ".shardnode.history"),
		DisableAutoSaveHistory: true,
		VimMode:                arguments.VI,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	for {
		rl.SetPrompt("shardnode> ")
		var cmd []string
		for {
			line, err := rl.Readline()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				if err.Error() == "Interrupt" {
					return nil
				}
				return errors.WithStack(err)
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			cmd = append(cmd, line)
			if strings.HasSuffix(line, ";") {
				break
			}
			rl.SetPrompt("         ")
		}
		stmtLine := strings.Join(cmd, " ")
		_ = rl.SaveHistory(stmtLine)

		if err := runLine(mgr, stmtLine); err != nil {
			fmt.Fprintf(rl.Stderr(), "%s\n", err) //nolint:errcheck
		}
	}
}

// runLine is a minimal parser: "get <tablespace> <key>" and
// "put <tablespace> <key> <value>" are the only forms understood, since
// SQL parsing and planning are out of scope at this layer.
func runLine(mgr *node.Manager, line string) error {
	line = strings.TrimSuffix(line, ";")
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return errors.NewInvalidStatementError("expected: get <tablespace> <key> | put <tablespace> <key> <value>")
	}
	switch strings.ToLower(fields[0]) {
	case "get":
		res, err := mgr.Get(statement.Statement{TableSpace: statement.TableSpaceName(fields[1]), Key: []byte(fields[2])})
		if err != nil {
			return err
		}
		if !res.Found {
			fmt.Println("(not found)")
			return nil
		}
		fmt.Println(string(res.Record))
		return nil
	case "put":
		if len(fields) < 4 {
			return errors.NewInvalidStatementError("put requires a value")
		}
		_, err := mgr.ExecuteUpdate(statement.Statement{
			TableSpace: statement.TableSpaceName(fields[1]),
			Kind:       statement.KindInsert,
			Key:        []byte(fields[2]),
			Value:      []byte(fields[3]),
		})
		return err
	default:
		return errors.NewInvalidStatementError("unknown command " + fields[0])
	}
}
