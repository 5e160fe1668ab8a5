// Command budgetctl inspects and edits budget periods from the terminal.
package main

func main() {
	Execute()
}
