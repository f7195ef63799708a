// Command heapctl drives the heapkit allocator from the command line: it
// replays allocation traces, prints resource limits, counts words and runs
// a small command shell.
package main

func main() {
	execute()
}
