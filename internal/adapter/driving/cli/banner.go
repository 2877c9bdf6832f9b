package cli

import (
	"fmt"

	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(formattedVersion string) {
	banner := `
         /$$$$$$$$ /$$           /$$
        | $$_____/|__/          | $$
        | $$       /$$ /$$$$$$$ | $$ /$$   /$$
        | $$$$$   | $$| $$__  $$| $$| $$  | $$
        | $$__/   | $$| $$  \ $$| $$| $$  | $$
        | $$      | $$| $$  | $$| $$| $$  | $$
        | $$      | $$| $$  | $$| $$|  $$$$$$$
        |__/      |__/|__/  |__/|__/ \____  $$
                                     /$$  | $$
                                    |  $$$$$$/
                                     \______/
        `
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(green(banner))
	fmt.Println(blue(fmt.Sprintf("Finly Dashboard CLI (v%s)", formattedVersion)))
}
