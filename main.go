package main

import "github.com/mikesmitty/covid-charts/cmd"

func main() {
	cmd.Execute()
}
