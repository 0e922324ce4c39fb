package main

import "vaultledger/cmd/vaultledger/cmd"

func main() {
	cmd.Execute()
}
