// Command penumbra resolves mod collections into an effective file table
// and metadata overlay, and deploys the result.
package main

func main() {
	Execute()
}
