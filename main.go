/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/tjgf2022/logkeeper-roles-hub/cmd"

func main() {
	cmd.Execute()
}
