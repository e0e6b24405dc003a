/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/mobilecollector/backoffice/cmd"

func main() {
	cmd.Execute()
}
