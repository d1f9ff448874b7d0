package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewCallCommand creates the call command.
func NewCallCommand() *cobra.Command {
	var (
		dataFile    string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "call ENDPOINT [VERB] [key=value ...]",
		Short: "Call an endpoint",
		Long: `Call a discovered endpoint. VERB is one of get, post, put, patch or delete
and defaults to get. Assignments become query parameters for get and body
fields for the other verbs; a path with {id} takes the id from id=N.

With --data the request is read from a YAML or JSON file ("-" for stdin).
Given a VERB, the file holds that verb's payload or a list of payloads.
Without one, it maps verbs to payloads. Assignments then fill keys the file
does not set. Several payloads run as a batch with --concurrency requests
in flight.`,
		Example: `  netbox call dcim_devices status=active
  netbox call dcim_devices_id patch id=7 status=offline
  netbox call dcim_sites post --data sites.yml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verb, assignmentArgs := splitVerb(args[1:])

			assignments, err := parseAssignments(assignmentArgs)
			if err != nil {
				return err
			}

			req, err := buildCallRequest(cmd, dataFile, verb, assignments)
			if err != nil {
				return err
			}

			client, err := openClient(cmd.Context())
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			endpoint, err := client.Endpoint(args[0])
			if err != nil {
				return err
			}

			result, err := endpoint.Call(cmd.Context(), req)
			if err != nil {
				return err
			}

			resources, err := collectResources(cmd, result, batchConcurrency(concurrency))
			if err != nil && len(resources) == 0 {
				return err
			}

			renderErr := renderResources(cmd.OutOrStdout(), viper.GetString("output"), resources)

			return errors.Join(err, renderErr)
		},
	}

	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "read the request from a YAML or JSON file, - for stdin")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "requests in flight for a batch (default from config, then 3)")

	return cmd
}

// splitVerb takes a leading verb off the arguments. Anything containing "="
// is an assignment.
func splitVerb(args []string) (netbox.Verb, []string) {
	if len(args) == 0 || strings.Contains(args[0], "=") {
		return "", args
	}

	return netbox.Verb(strings.ToLower(args[0])), args[1:]
}

func buildCallRequest(cmd *cobra.Command, dataFile string, verb netbox.Verb, assignments netbox.Payload) (netbox.Request, error) {
	if dataFile == "" {
		if verb == "" {
			verb = netbox.VerbGet
		}

		return netbox.NewRequest().Add(verb, assignments), nil
	}

	req, err := readRequestFile(dataFile, cmd.InOrStdin(), verb)
	if err != nil {
		return netbox.Request{}, err
	}

	if req.IsEmpty() {
		if verb == "" {
			return netbox.Request{}, fmt.Errorf("%w: %s is empty", constants.ErrInvalidRequestFile, dataFile)
		}

		return netbox.NewRequest().Add(verb, assignments), nil
	}

	return withAssignments(req, assignments), nil
}

func batchConcurrency(flag int) int {
	if flag > 0 {
		return flag
	}

	if configured := viper.GetInt("concurrency"); configured > 0 {
		return configured
	}

	return constants.DefaultConcurrencyLimit
}

// collectResources flattens a result. Batch units run concurrently. Results
// of successful units keep unit order; errors of failed units are joined.
func collectResources(cmd *cobra.Command, result netbox.Result, concurrency int) ([]*netbox.Resource, error) {
	if result.Kind() != netbox.ResultBatch {
		return result.Resources(), nil
	}

	executor := netbox.NewBatchExecutor(concurrency)
	unitResults := executor.Execute(cmd.Context(), result.Batch())

	var (
		resources []*netbox.Resource
		errs      []error
	)

	for _, unitResult := range unitResults {
		if unitResult.Error != nil {
			errs = append(errs, fmt.Errorf("request %d: %w", unitResult.Index+1, unitResult.Error))

			continue
		}

		resources = append(resources, unitResult.Result.Resources()...)
	}

	return resources, errors.Join(errs...)
}
