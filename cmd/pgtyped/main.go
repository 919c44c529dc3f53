package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/golergka/pgtyped/cmd/pgtyped/commands"
	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/logger"
)

func main() {
	err := commands.RootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		// the batch summary has already reported the failing file
		if !errors.Is(err, errors.ErrFailFast) {
			pterm.Error.Println(err.Error())
			for _, hint := range errors.GetAllHints(err) {
				pterm.Info.Println(hint)
			}
		}
		os.Exit(1)
	}
}
