/*
   chat is a websocket chat server
   Copyright (C) 2019 Timothy Drysdale <timothy.d.drysdale@gmail.com>

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/practable/chat/internal/event"
	"github.com/practable/chat/internal/reconws"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var clientCmd = &cobra.Command{
	Use:   "client <url>",
	Short: "interactive chat client",
	Long: `Client connects to a chat server and reads lines from stdin.

/name <username>  claim a username
/typing           tell others you are typing
/stop             tell others you stopped typing
/quit             leave

Any other line is sent as a chat message. For example:

chat client ws://localhost:3000/ws
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {

		log.SetLevel(log.WarnLevel)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)

		go func() {
			<-c
			cancel()
		}()

		r := reconws.New()

		go r.Reconnect(ctx, args[0])

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case e := <-r.In:
					fmt.Println(describe(e))
				}
			}
		}()

		lines := make(chan string)

		go readLines(os.Stdin, lines)

		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-lines:
				if !ok {
					return
				}
				e, quit, err := parseLine(line)
				if quit {
					return
				}
				if err != nil {
					fmt.Println(err.Error())
					continue
				}
				if e.Name == "" {
					continue
				}
				select {
				case r.Out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	},
}

func readLines(in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

// parseLine turns a line of input into an event; an empty event means nothing to send
func parseLine(line string) (event.Event, bool, error) {

	line = strings.TrimSpace(line)

	switch {
	case line == "":
		return event.Event{}, false, nil
	case line == "/quit":
		return event.Event{}, true, nil
	case line == "/typing":
		return event.Event{Name: event.Typing}, false, nil
	case line == "/stop":
		return event.Event{Name: event.StopTyping}, false, nil
	case line == "/name" || strings.HasPrefix(line, "/name "):
		name := strings.TrimSpace(strings.TrimPrefix(line, "/name"))
		if name == "" {
			return event.Event{}, false, fmt.Errorf("usage: /name <username>")
		}
		e, err := event.New(event.SetUsername, name)
		return e, false, err
	case strings.HasPrefix(line, "/"):
		return event.Event{}, false, fmt.Errorf("unknown command %s", line)
	default:
		e, err := event.New(event.ChatMessage, line)
		return e, false, err
	}
}

// describe formats a received event for display
func describe(e event.Event) string {

	switch e.Name {

	case event.UsernameRegister:
		if ok, err := e.Bool(); err == nil && ok {
			return "* username accepted"
		}
		return "* username refused"

	case event.UserList:
		users, err := e.Strings()
		if err == nil {
			return "* users: " + strings.Join(users, ", ")
		}

	case event.Typing:
		typing, err := e.Strings()
		if err == nil {
			if len(typing) == 0 {
				return "* nobody is typing"
			}
			return "* typing: " + strings.Join(typing, ", ")
		}

	case event.ChatMessage:
		m, err := e.Message()
		if err == nil {
			return fmt.Sprintf("<%s> %s", m.Username, m.Message)
		}
	}

	return fmt.Sprintf("* %s %s", e.Name, string(e.Data))
}

func init() {
	rootCmd.AddCommand(clientCmd)
}
