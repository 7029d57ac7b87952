package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"k8s.io/utils/clock"

	"github.com/renzon/robottelo/internal/models"
)

const exitCommandNotFound = 127

var rootListing = []string{"bin", "boot", "dev", "etc", "home", "lib", "opt", "root", "tmp", "usr", "var"}

// shell runs rendered job scripts against a simulated host. It understands the
// handful of commands remote execution checks exercise; anything else is not found.
type shell struct {
	clock clock.Clock
	host  models.Host
	out   []string
}

// run executes script line by line. The exit status is the one of the last command
// unless the script calls exit.
func (sh *shell) run(ctx context.Context, script string) int {
	status := 0
	for _, line := range strings.Split(script, "\n") {
		for _, cmd := range strings.Split(line, ";") {
			args := tokenize(cmd)
			if len(args) == 0 || strings.HasPrefix(args[0], "#") {
				continue
			}
			var exited bool
			status, exited = sh.exec(ctx, args)
			if exited {
				return status
			}
		}
	}
	return status
}

func (sh *shell) exec(ctx context.Context, args []string) (int, bool) {
	switch args[0] {
	case "echo":
		sh.print(strings.Join(args[1:], " "))
	case "true", ":":
	case "false":
		return 1, false
	case "hostname":
		sh.print(sh.host.Name)
	case "pwd":
		sh.print("/root")
	case "whoami":
		sh.print("root")
	case "uname":
		if len(args) > 1 && args[1] == "-a" {
			sh.print(fmt.Sprintf("Linux %s 4.18.0-513.el8.x86_64 #1 SMP x86_64 x86_64 x86_64 GNU/Linux", sh.host.Name))
		} else {
			sh.print("Linux")
		}
	case "ls":
		if len(args) > 1 && args[len(args)-1] != "/" && !strings.HasPrefix(args[len(args)-1], "-") {
			sh.print(fmt.Sprintf("ls: cannot access '%s': No such file or directory", args[len(args)-1]))
			return 2, false
		}
		for _, entry := range rootListing {
			sh.print(entry)
		}
	case "sleep":
		if len(args) < 2 {
			sh.print("sleep: missing operand")
			return 1, false
		}
		secs, err := strconv.ParseFloat(args[1], 64)
		if err != nil || secs < 0 {
			sh.print(fmt.Sprintf("sleep: invalid time interval '%s'", args[1]))
			return 1, false
		}
		select {
		case <-ctx.Done():
			return 130, true
		case <-sh.clock.After(time.Duration(secs * float64(time.Second))):
		}
	case "exit":
		code := 0
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				sh.print(fmt.Sprintf("bash: exit: %s: numeric argument required", args[1]))
				return 2, true
			}
			code = n & 0xff
		}
		return code, true
	default:
		sh.print(fmt.Sprintf("bash: %s: command not found", args[0]))
		return exitCommandNotFound, false
	}
	return 0, false
}

func (sh *shell) print(line string) {
	sh.out = append(sh.out, line)
}

// tokenize splits a command on blanks, honouring single and double quotes.
func tokenize(cmd string) []string {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inWord  bool
	)
	for _, r := range cmd {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		args = append(args, current.String())
	}
	return args
}
