package main

import "gemini-chat-cli/cmd"

func main() {
	cmd.Execute()
}
