// Command heapctl replays allocation scripts against a heapkit heap and prints
// the resulting block layout.
package main

func main() {
	execute()
}
