// Command api starts the HTTP and gRPC servers without the CLI. Container images
// use it as their entrypoint.
package main

import (
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/campuswash/laundry/internal/app"
)

func main() {
	application := fx.New(app.Module)
	if err := application.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "laundry api:", err)
		os.Exit(1)
	}
	application.Run()
}
