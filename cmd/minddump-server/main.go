// Command minddump-server runs the MindDump mock API.
package main

func main() {
	Execute()
}
