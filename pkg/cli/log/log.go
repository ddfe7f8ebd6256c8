/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package log provides the terminal output helpers of the client
package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

const (
	debugEnvName  = "NOTABLE_DEBUG"
	debugEnvValue = "1"

	indent = "  "
)

var (
	// ColorRed is a red foreground color
	ColorRed = color.New(color.FgRed)
	// ColorGreen is a green foreground color
	ColorGreen = color.New(color.FgGreen)
	// ColorYellow is a yellow foreground color
	ColorYellow = color.New(color.FgYellow)
	// ColorBlue is a blue foreground color
	ColorBlue = color.New(color.FgBlue)
	// ColorGray is a gray foreground color
	ColorGray = color.New(color.FgHiBlack)
)

var (
	mu     sync.Mutex
	output io.Writer = color.Output
)

// SetOutput redirects all messages to the given writer and returns
// a function that restores the previous one
func SetOutput(w io.Writer) func() {
	mu.Lock()
	prev := output
	output = w
	mu.Unlock()

	return func() {
		mu.Lock()
		output = prev
		mu.Unlock()
	}
}

// background passes log concurrently with the foreground command
func write(s string) {
	mu.Lock()
	defer mu.Unlock()

	fmt.Fprint(output, s)
}

func withSymbol(symbol, msg string) {
	write(fmt.Sprintf("%s%s %s", indent, symbol, msg))
}

// Info prints information
func Info(msg string) {
	withSymbol(ColorBlue.Sprint("•"), msg)
}

// Infof prints information with optional format verbs
func Infof(msg string, v ...interface{}) {
	withSymbol(ColorBlue.Sprint("•"), fmt.Sprintf(msg, v...))
}

// Success prints a success message
func Success(msg string) {
	withSymbol(ColorGreen.Sprint("✔"), msg)
}

// Successf prints a success message with optional format verbs
func Successf(msg string, v ...interface{}) {
	withSymbol(ColorGreen.Sprint("✔"), fmt.Sprintf(msg, v...))
}

// Plain prints a plain message without any prefix symbol
func Plain(msg string) {
	write(indent + msg)
}

// Plainf prints a plain message without any prefix symbol. It takes optional format verbs.
func Plainf(msg string, v ...interface{}) {
	write(indent + fmt.Sprintf(msg, v...))
}

// Warnf prints a warning message with optional format verbs
func Warnf(msg string, v ...interface{}) {
	withSymbol(ColorYellow.Sprint("•"), fmt.Sprintf(msg, v...))
}

// Error prints an error message
func Error(msg string) {
	withSymbol(ColorRed.Sprint("⨯"), msg)
}

// Errorf prints an error message with optional format verbs
func Errorf(msg string, v ...interface{}) {
	withSymbol(ColorRed.Sprint("⨯"), fmt.Sprintf(msg, v...))
}

// Printf prints an normal message
func Printf(msg string, v ...interface{}) {
	withSymbol(ColorGray.Sprint("•"), fmt.Sprintf(msg, v...))
}

// Askf prints a question with optional format verbs. The leading symbol is gray
// when the input is masked.
func Askf(msg string, masked bool, v ...interface{}) {
	symbol := ColorGreen.Sprint("[?]")
	if masked {
		symbol = ColorGray.Sprint("[?]")
	}

	write(fmt.Sprintf("%s%s %s: ", indent, symbol, fmt.Sprintf(msg, v...)))
}

// IsDebug returns true if debug mode is enabled
func IsDebug() bool {
	return os.Getenv(debugEnvName) == debugEnvValue
}

// Debug prints to the console if NOTABLE_DEBUG is set
func Debug(msg string, v ...interface{}) {
	if IsDebug() {
		write(fmt.Sprintf("%s %s", ColorGray.Sprint("DEBUG:"), fmt.Sprintf(msg, v...)))
	}
}
