package main

import (
	"fmt"
	"strings"
)

// flagSet 标记某个子命令接受哪些参数。
type flagSet uint8

const (
	flagFilter flagSet = 1 << iota
	flagApply
	flagFormat
	flagOut
	flagWatch
	flagForce
)

type cmdArgs struct {
	Positional []string

	Filters    []string
	FiltersSet bool

	Apply    bool
	ApplySet bool

	Format string
	Out    string
	Watch  bool
	Force  bool
}

// parseArgs 解析子命令参数。--filter 可重复，也可用逗号分隔多个标签。
func parseArgs(args []string, allowed flagSet, maxPositional int) (cmdArgs, error) {
	ca := cmdArgs{}

	value := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s 需要一个值", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		name, inline, hasInline := strings.Cut(a, "=")
		if !strings.HasPrefix(a, "-") {
			if len(ca.Positional) >= maxPositional {
				return cmdArgs{}, fmt.Errorf("多余的参数 %q", a)
			}
			ca.Positional = append(ca.Positional, a)
			continue
		}

		var bit flagSet
		switch name {
		case "--filter":
			bit = flagFilter
		case "--apply":
			bit = flagApply
		case "--format":
			bit = flagFormat
		case "--out", "-o":
			bit = flagOut
		case "--watch":
			bit = flagWatch
		case "--force":
			bit = flagForce
		default:
			return cmdArgs{}, fmt.Errorf("未知参数 %q", a)
		}
		if allowed&bit == 0 {
			return cmdArgs{}, fmt.Errorf("该命令不支持参数 %q", name)
		}

		switch bit {
		case flagFilter:
			v := inline
			if !hasInline {
				var err error
				if v, err = value(&i, name); err != nil {
					return cmdArgs{}, err
				}
			}
			ca.Filters = append(ca.Filters, splitList(v)...)
			ca.FiltersSet = true
		case flagApply:
			ca.Apply = true
			if hasInline {
				switch inline {
				case "true":
				case "false":
					ca.Apply = false
				default:
					return cmdArgs{}, fmt.Errorf("--apply 只能是 true 或 false，实际是 %q", inline)
				}
			}
			ca.ApplySet = true
		case flagFormat:
			v := inline
			if !hasInline {
				var err error
				if v, err = value(&i, name); err != nil {
					return cmdArgs{}, err
				}
			}
			ca.Format = strings.ToLower(strings.TrimSpace(v))
		case flagOut:
			v := inline
			if !hasInline {
				var err error
				if v, err = value(&i, name); err != nil {
					return cmdArgs{}, err
				}
			}
			if strings.TrimSpace(v) == "" {
				return cmdArgs{}, fmt.Errorf("%s 不能为空", name)
			}
			ca.Out = v
		case flagWatch:
			if hasInline {
				return cmdArgs{}, fmt.Errorf("--watch 不接受值")
			}
			ca.Watch = true
		case flagForce:
			if hasInline {
				return cmdArgs{}, fmt.Errorf("--force 不接受值")
			}
			ca.Force = true
		}
	}
	return ca, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractVerbose 从参数中移除 -v/--verbose（任意位置）。
func extractVerbose(args []string) ([]string, bool) {
	out := make([]string, 0, len(args))
	verbose := false
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			verbose = true
			continue
		}
		out = append(out, a)
	}
	return out, verbose
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}
