package find_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mlship/mlship/api/types/misc/rfctime"
	apimodels "github.com/mlship/mlship/api/types/models"
	kprof "github.com/mlship/mlship/cmd/mlship/config/profiles"
	kenv "github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	model_find "github.com/mlship/mlship/cmd/mlship/subcommands/model/find"
	"github.com/mlship/mlship/cmd/mlship/subcommands/internal/commandline"
	"github.com/mlship/mlship/cmd/mlship/subcommands/logger"
	"github.com/mlship/mlship/pkg/cmp"
	"github.com/mlship/mlship/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func TestFindCommand(t *testing.T) {

	presentation := []apimodels.Summary{
		{
			Group: "fraud-detector", Version: 12,
			Status:         apimodels.StatusCompleted,
			ApprovalStatus: apimodels.ApprovalPending,
			UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
				"2026-08-24T10:30:00+00:00",
			)).OrFatal(t),
		},
	}

	type When struct {
		flag    model_find.Flag
		shipEnv kenv.ShipEnv
		err     error
	}

	type Then struct {
		query krst.FindModelParameter
		err   error
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			profile := &kprof.Profile{ApiRoot: "http://api.mlship.invalid"}
			client := try.To(krst.NewClient(profile)).OrFatal(t)

			find := func(
				_ context.Context, _ krst.Client, query krst.FindModelParameter,
			) ([]apimodels.Summary, error) {
				if query.Group != then.query.Group {
					t.Errorf(
						"wrong group: (actual, expected) != (%s, %s)",
						query.Group, then.query.Group,
					)
				}
				if !cmp.SliceEq(query.Approval, then.query.Approval) {
					t.Errorf(
						"wrong approval: (actual, expected) != (%v, %v)",
						query.Approval, then.query.Approval,
					)
				}
				if (query.Since == nil) != (then.query.Since == nil) {
					t.Errorf(
						"wrong since: (actual, expected) != (%v, %v)",
						query.Since, then.query.Since,
					)
				} else if query.Since != nil && !query.Since.Equal(*then.query.Since) {
					t.Errorf(
						"wrong since: (actual, expected) != (%s, %s)",
						query.Since, then.query.Since,
					)
				}
				return presentation, when.err
			}

			testee := model_find.Task(find)

			stdout := new(strings.Builder)
			actual := testee(
				context.Background(), logger.Null(), when.shipEnv, client,
				commandline.MockCommandline[model_find.Flag]{
					Stdout_: stdout,
					Stderr_: io.Discard,
					Flags_:  when.flag,
				},
				[]any{},
			)

			if !errors.Is(actual, then.err) {
				t.Errorf(
					"wrong result: (actual, expected) != (%v, %v)",
					actual, then.err,
				)
			}

			if actual == nil {
				var actualValue []apimodels.Summary
				if err := json.Unmarshal([]byte(stdout.String()), &actualValue); err != nil {
					t.Fatal(err)
				}
				if !cmp.SliceEqWith(
					actualValue, presentation,
					func(a, x apimodels.Summary) bool { return a.Equal(x) },
				) {
					t.Errorf(
						"stdout:\n===actual===\n%+v\n===expected===\n%+v",
						actualValue, presentation,
					)
				}
			}
		}
	}

	t.Run("when '--group' is passed, it searches in that group", theory(
		When{
			flag: model_find.Flag{Group: "fraud-detector"},
		},
		Then{
			query: krst.FindModelParameter{
				Group: "fraud-detector", Approval: []string{},
			},
		},
	))

	t.Run("when '--group' is omitted, it falls back to mlshipenv", theory(
		When{
			flag:    model_find.Flag{},
			shipEnv: kenv.ShipEnv{ModelGroup: "fraud-detector"},
		},
		Then{
			query: krst.FindModelParameter{
				Group: "fraud-detector", Approval: []string{},
			},
		},
	))

	t.Run("when no group is known, it fails as usage error", theory(
		When{
			flag: model_find.Flag{},
		},
		Then{err: flarc.ErrUsage},
	))

	t.Run("when '--approval' is passed loosely, the vendor statuses are sent", theory(
		When{
			flag: model_find.Flag{
				Group:    "fraud-detector",
				Approval: []string{"pending", "APPROVE"},
			},
		},
		Then{
			query: krst.FindModelParameter{
				Group: "fraud-detector",
				Approval: []string{
					apimodels.ApprovalPending, apimodels.ApprovalApproved,
				},
			},
		},
	))

	t.Run("when '--approval' is unknown, it fails as usage error", theory(
		When{
			flag: model_find.Flag{
				Group:    "fraud-detector",
				Approval: []string{"maybe"},
			},
		},
		Then{err: flarc.ErrUsage},
	))

	t.Run("when '--since' is passed, the lower bound is sent", theory(
		When{
			flag: model_find.Flag{
				Group: "fraud-detector",
				Since: "2026-08-20T00:00:00+00:00",
			},
		},
		Then{
			query: krst.FindModelParameter{
				Group:    "fraud-detector",
				Approval: []string{},
				Since: func() *time.Time {
					s := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
					return &s
				}(),
			},
		},
	))

	t.Run("when '--since' is broken, it fails as usage error", theory(
		When{
			flag: model_find.Flag{
				Group: "fraud-detector",
				Since: "the day before yesterday",
			},
		},
		Then{err: flarc.ErrUsage},
	))
}
