// Package main provides a CLI that checks the blog API contract for
// backward-incompatible changes. The base contract is a previously published
// swagger file (YAML or JSON); the revision defaults to the swagger document
// compiled into this build.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dgaponov99/practicum-my-blog/docs"
)

func main() {
	basePath := flag.String("base", "", "base OpenAPI swagger.yaml path")
	revisionPath := flag.String("revision", "", "revision OpenAPI swagger.yaml path (default: embedded docs)")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	baseSpec, err := loadSpecFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}

	var revisionSpec parsedSpec
	if strings.TrimSpace(*revisionPath) == "" {
		revisionSpec, err = parseSpec([]byte(docs.SwaggerInfo.ReadDoc()))
	} else {
		revisionSpec, err = loadSpecFile(*revisionPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	issues := compare(baseSpec, revisionSpec)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

func loadSpecFile(path string) (parsedSpec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return parsedSpec{}, err
	}
	return parseSpec(raw)
}
