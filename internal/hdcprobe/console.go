// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hdcprobe

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kiksotik/hdc/pkg/hdc/demo"
	"github.com/kiksotik/hdc/pkg/hdc/engine"
	"github.com/kiksotik/hdc/pkg/hdc/model"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive single-keystroke console against the bundled demo device",
	Long: `console is a small hand-written interactive client, not a generated
proxy: each keystroke sends one hard-coded request against the demo device's
Core and Led features and prints the reply.

  r  Reset (Core.Reset)
  1  LED on (Led.SetOn true)
  0  LED off (Led.SetOn false)
  v  query HDC version
  m  query max request size
  q  quit`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	t, info, err := openTransport()
	if err != nil {
		return err
	}

	c, err := newClient(t)
	if err != nil {
		return err
	}
	defer c.close()

	fmt.Printf("connected: %s\n", info)
	fmt.Println("r=Reset  1=LED on  0=LED off  v=version  m=max-req  q=quit")

	stdinFd := int(syscall.Stdin)
	var restore func()
	if state, err := term.MakeRaw(stdinFd); err == nil {
		restore = func() { term.Restore(stdinFd, state) }
		defer restore()
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		key, _, err := reader.ReadRune()
		if err != nil {
			return nil
		}

		switch key {
		case 'q', 'Q':
			fmt.Print("\r\nbye\r\n")
			return nil
		case 'r', 'R':
			consoleCommand(c, model.CoreFeatureID, 0x01, nil)
		case '1':
			consoleCommand(c, demo.LEDFeatureID, 0x01, []byte{0x01})
		case '0':
			consoleCommand(c, demo.LEDFeatureID, 0x01, []byte{0x00})
		case 'v', 'V':
			reply, err := c.requestMeta(engine.MetaIDHdcVersion, replyTimeout)
			printConsoleResult("version", reply, err)
		case 'm', 'M':
			reply, err := c.requestMeta(engine.MetaIDMaxReq, replyTimeout)
			if err == nil && len(reply) >= 4 {
				fmt.Printf("\r\nmax-req: %d\r\n", binary.LittleEndian.Uint32(reply))
			} else {
				printConsoleResult("max-req", reply, err)
			}
		}
	}
}

func consoleCommand(c *client, featureID, commandID byte, args []byte) {
	exc, _, err := c.requestCommand(featureID, commandID, args, replyTimeout)
	if err != nil {
		fmt.Printf("\r\nerror: %v\r\n", err)
		return
	}
	if exc != byte(model.ExcNone) {
		fmt.Printf("\r\nexception: 0x%02X\r\n", exc)
		return
	}
	fmt.Print("\r\nok\r\n")
}

func printConsoleResult(label string, reply []byte, err error) {
	if err != nil {
		fmt.Printf("\r\n%s: error: %v\r\n", label, err)
		return
	}
	fmt.Printf("\r\n%s: %s\r\n", label, string(reply))
}
