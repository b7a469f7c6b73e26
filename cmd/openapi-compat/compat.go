package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

type operation struct {
	Responses  map[string]struct{}
	Parameters map[string]bool // name@in -> required
}

type parsedSpec struct {
	Paths map[string]map[string]operation
}

// parseSpec reads the paths section of a swagger document. JSON documents
// parse too since JSON is valid YAML.
func parseSpec(raw []byte) (parsedSpec, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return parsedSpec{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return parsedSpec{}, errors.New("missing top-level paths field")
	}
	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return parsedSpec{}, errors.New("paths is not an object")
	}

	spec := parsedSpec{Paths: make(map[string]map[string]operation)}
	for pathKey, pathEntry := range pathsMap {
		pathOpsRaw, ok := toMap(pathEntry)
		if !ok {
			continue
		}

		ops := make(map[string]operation)
		for methodKey, methodEntry := range pathOpsRaw {
			methodLower := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[methodLower]; !supported {
				continue
			}
			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}
			ops[methodLower] = operation{
				Responses:  responseCodes(methodMap["responses"]),
				Parameters: parameters(methodMap["parameters"]),
			}
		}

		if len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}

	return spec, nil
}

func responseCodes(raw interface{}) map[string]struct{} {
	out := make(map[string]struct{})
	responses, ok := toMap(raw)
	if !ok {
		return out
	}
	for code := range responses {
		if normalized := strings.ToLower(strings.TrimSpace(code)); normalized != "" {
			out[normalized] = struct{}{}
		}
	}
	return out
}

func parameters(raw interface{}) map[string]bool {
	out := make(map[string]bool)
	list, ok := raw.([]interface{})
	if !ok {
		return out
	}
	for _, item := range list {
		param, ok := toMap(item)
		if !ok {
			continue
		}
		name, _ := param["name"].(string)
		in, _ := param["in"].(string)
		if name == "" {
			continue
		}
		required, _ := param["required"].(bool)
		out[name+"@"+in] = required
	}
	return out
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// compare lists the changes in revision that break clients of base: removed
// paths, operations, response codes or parameters, and parameters that became
// required.
func compare(base, revision parsedSpec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			op := strings.ToUpper(method) + " " + path
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s", op))
				continue
			}

			for responseCode := range baseOp.Responses {
				if _, ok := revOp.Responses[responseCode]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", op, strings.ToUpper(responseCode)))
				}
			}
			for param, wasRequired := range baseOp.Parameters {
				required, ok := revOp.Parameters[param]
				if !ok {
					issues = append(issues, fmt.Sprintf("removed parameter: %s %s", op, param))
					continue
				}
				if required && !wasRequired {
					issues = append(issues, fmt.Sprintf("parameter became required: %s %s", op, param))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
