package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func check(e error) {
	if e != nil {
		fmt.Printf("%v\n", e.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "zynexa",
	Short:   "Zynexa operator tools",
	Long:    `Zynexa operator tools: identity keys, request signatures, fee payer and session signing secrets for the Zynexa server.`,
	Version: "0.1.0",
	Run: func(cmd *cobra.Command, args []string) {
		// empty
	},
}

func main() {
	Execute()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}

// output prints v as indented JSON, or writes it to outputFile (refusing to overwrite)
func output(v interface{}, outputFile string) {
	fileBytes, err := json.MarshalIndent(v, "", "  ")
	check(err)
	if outputFile == "" {
		fmt.Printf("\n%s\n", string(fileBytes))
		return
	}
	if _, err := os.Stat(outputFile); !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("File already exists: %s\n", outputFile)
		os.Exit(1)
	}
	check(os.WriteFile(outputFile, fileBytes, 0600))
	fmt.Printf("Output file: %s\n", outputFile)
}
