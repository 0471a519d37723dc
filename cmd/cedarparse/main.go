// Command cedarparse is an interactive CLI for exercising the Cedar
// grammar engine: it reads a policy set (from a file argument, or line by
// line at a prompt), parses it, and reports the resulting CST shape and
// any diagnostics.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/tracing"

	"github.com/cedarcst/cstparse/cst"
	"github.com/cedarcst/cstparse/parse"
)

func main() {
	initDisplay()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	strict := flag.Bool("strict", false, "Use strict recovery (None placeholders) instead of tolerant")
	flag.Parse()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))
	pterm.Info.Println("Welcome to cedarparse")

	if args := flag.Args(); len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(2)
		}
		runOne(string(data), *strict)
		return
	}

	repl, err := readline.New("cedar> ")
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	pterm.Info.Println("Enter one or more policies, quit with <ctrl>D")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		runOne(line, *strict)
	}
	pterm.Info.Println("Good bye!")
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func tracer() tracing.Trace {
	return tracing.Select("cstparse.cmd")
}

func runOne(input string, strict bool) {
	node, errs := parse.Policies(input, parse.WithTolerant(!strict))
	for _, e := range errs {
		pterm.Error.Println(e.Error())
	}
	policies, ok := node.Get()
	if !ok {
		pterm.Error.Println("no policies parsed")
		return
	}
	root := summarizePolicies(policies)
	pterm.DefaultTree.WithRoot(root).Render()
	pterm.Info.Printf("%d polic%s, %d diagnostic%s\n",
		len(policies.Items), plural(len(policies.Items), "y", "ies"),
		len(errs), plural(len(errs), "", "s"))
}

func plural(n int, singular, pluralSuffix string) string {
	if n == 1 {
		return singular
	}
	return pluralSuffix
}

func summarizePolicies(policies cst.Policies) pterm.TreeNode {
	root := pterm.TreeNode{Text: "policies"}
	for i, item := range policies.Items {
		policy, ok := item.Get()
		if !ok {
			root.Children = append(root.Children, pterm.TreeNode{Text: fmt.Sprintf("[%d] <none>", i)})
			continue
		}
		root.Children = append(root.Children, summarizePolicy(i, policy))
	}
	return root
}

func summarizePolicy(i int, policy cst.Policy) pterm.TreeNode {
	if policy.Kind == cst.PolicyError {
		return pterm.TreeNode{Text: fmt.Sprintf("[%d] <error>", i)}
	}
	node := pterm.TreeNode{Text: fmt.Sprintf("[%d] %s", i, policy.Body.Effect.Text())}
	for _, v := range policy.Body.Variables {
		vd, ok := v.Get()
		if !ok {
			continue
		}
		node.Children = append(node.Children, pterm.TreeNode{Text: vd.Variable.Text()})
	}
	for _, c := range policy.Body.Conds {
		cond, ok := c.Get()
		if !ok {
			continue
		}
		node.Children = append(node.Children, pterm.TreeNode{Text: cond.Keyword.Text()})
	}
	return node
}
