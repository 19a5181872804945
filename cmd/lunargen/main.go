package main

import "runtime"

func init() {
	// The viewer's window must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	Execute()
}
