// regiondex - Cloud Region Catalog
// Find the right region. Fast.
package main

func main() {
	Execute()
}
