package invoke

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flag struct {
	ContentType string `flag:"content-type" alias:"t" metavar:"MIME" help:"Content type of the payload. Default: application/json."`
	File        string `flag:"file" alias:"f" metavar:"PATH" help:"Read the payload from this file. '-' reads stdin."`
	Data        string `flag:"data" alias:"d" metavar:"PAYLOAD" help:"Use this string as the payload."`
}

type Option struct {
	invoke Invoke
}

type Invoke func(
	ctx context.Context,
	client krst.Client,
	name string,
	contentType string,
	payload io.Reader,
	handler func(io.Reader) error,
) error

func WithRunner(invoke Invoke) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.invoke = invoke
		return opt
	}
}

const ARG_ENDPOINT = "ENDPOINT"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		invoke: RunInvokeEndpoint,
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Send a payload to an inference endpoint for a real-time prediction.",
		Flag{
			ContentType: "application/json",
		},
		flarc.Args{
			{
				Name: ARG_ENDPOINT, Required: false,
				Help: "Name of the endpoint to be invoked. Default: the staging endpoint in mlshipenv.",
			},
		},
		common.NewTask(Task(option.invoke)),
		flarc.WithDescription(`
Send a payload to an inference endpoint for a real-time prediction, and
write the raw response to stdout.

The payload comes from '--data', from '--file', or from stdin when
'--file -' is passed. Exactly one source is expected.

Example
-------

Smoke-test the staging endpoint with an inline payload:

	{{ .Command }} --data '{"instances": [[1.0, 2.0]]}'

Send a CSV file to a specific endpoint:

	{{ .Command }} --content-type text/csv --file ./sample.csv my-endpoint-prod
`),
	)
}

func Task(invoke Invoke) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		shipEnv env.ShipEnv,
		client krst.Client,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()

		name := shipEnv.StagingEndpoint
		if args := cl.Args()[ARG_ENDPOINT]; 0 < len(args) {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf(
				"%w: endpoint name is not given. pass it as argument or set it in mlshipenv",
				flarc.ErrUsage,
			)
		}

		if flags.Data != "" && flags.File != "" {
			return fmt.Errorf("%w: --data and --file are exclusive", flarc.ErrUsage)
		}

		var payload io.Reader
		switch {
		case flags.Data != "":
			payload = strings.NewReader(flags.Data)
		case flags.File == "-":
			payload = cl.Stdin()
		case flags.File != "":
			f, err := os.Open(flags.File)
			if err != nil {
				return fmt.Errorf("%w: failed to open payload file (%s)", err, flags.File)
			}
			defer f.Close()
			payload = f
		default:
			return fmt.Errorf("%w: payload is not given. pass --data or --file", flarc.ErrUsage)
		}

		err := invoke(
			ctx, client, name, flags.ContentType, payload,
			func(response io.Reader) error {
				_, err := io.Copy(cl.Stdout(), response)
				return err
			},
		)
		if err != nil {
			return fmt.Errorf("%w: endpoint:%s", err, name)
		}
		return nil
	}
}

func RunInvokeEndpoint(
	ctx context.Context, client krst.Client,
	name string, contentType string, payload io.Reader,
	handler func(io.Reader) error,
) error {
	return client.InvokeEndpoint(ctx, name, contentType, payload, handler)
}
