package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zatekoja/clinicdesk/internal/application/services"
	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/internal/query/filters"
	querysvc "github.com/zatekoja/clinicdesk/internal/query/services"
)

func appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"agenda"},
		Short:   "List and change appointments",
	}

	var f filters.AppointmentFilter
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments with patient and professional names",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				f.Range.Location = time.Local
				agenda := querysvc.NewAgendaQueryService(a.resources.Appointments, a.resources.Patients, a.resources.Professionals)
				entries, err := agenda.Agenda(ctx, f)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No appointments match.")
					return nil
				}
				w := table(cmd.OutOrStdout(), "ID", "START", "STATUS", "PATIENT", "PROFESSIONAL", "TITLE")
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Start, e.Status, e.PatientName, e.ProfessionalName, e.Title)
				}
				return w.Flush()
			})
		},
	}
	addRangeFlags(listCmd, &f.Range)
	listCmd.Flags().StringVar(&f.Status, "status", filters.All, "pending, confirmed, completed, cancelled or all")
	listCmd.Flags().StringVar(&f.ProfessionalID, "professional", filters.All, "Professional ID")
	listCmd.Flags().StringVar(&f.PatientID, "patient", filters.All, "Patient ID")
	listCmd.Flags().StringVarP(&f.Query, "query", "q", "", "Free-text search")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "reschedule ID START [END]",
		Short: "Move an appointment",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			end := ""
			if len(args) == 3 {
				end = args[2]
			}
			return withCalendar(cmd, func(ctx context.Context, calendar *services.CalendarService) error {
				if err := calendar.Reschedule(ctx, args[0], args[1], end); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Appointment %s moved to %s.\n", args[0], args[1])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status ID STATUS",
		Short: "Change the status of an appointment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := entities.ParseAppointmentStatus(args[1])
			if err != nil {
				return err
			}
			return withCalendar(cmd, func(ctx context.Context, calendar *services.CalendarService) error {
				if err := calendar.ChangeStatus(ctx, args[0], status); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Appointment %s is now %s.\n", args[0], status)
				return nil
			})
		},
	})

	return cmd
}

// withCalendar loads the calendar before handing it to fn. A failed load is
// reported instead of acting on a list that is not there.
func withCalendar(cmd *cobra.Command, fn func(ctx context.Context, calendar *services.CalendarService) error) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		calendar := services.NewCalendarService(a.resources.Appointments, a.notifier, a.metrics)
		if err := calendar.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, calendar)
	})
}

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and update tasks",
	}

	var f filters.TaskFilter
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, open and high priority first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTaskBoard(cmd, func(ctx context.Context, board *services.TaskBoardService) error {
				state := board.State()
				if state.Status == services.ListEmpty {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks yet.")
					return nil
				}
				tasks := f.Apply(state.Items)
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks match.")
					return nil
				}
				w := table(cmd.OutOrStdout(), "ID", "DONE", "PRIORITY", "DUE", "TITLE")
				for _, t := range tasks {
					done := ""
					if t.Completed {
						done = "x"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, done, t.Priority, t.DueDate, t.Title)
				}
				return w.Flush()
			})
		},
	}
	listCmd.Flags().StringVar(&f.Status, "status", filters.All, "pending, done or all")
	listCmd.Flags().StringVar(&f.AssigneeID, "assignee", filters.All, "User ID")
	listCmd.Flags().StringVar(&f.Priority, "priority", filters.All, "low, medium, high or all")
	listCmd.Flags().StringVarP(&f.Query, "query", "q", "", "Free-text search")
	cmd.AddCommand(listCmd)

	var reopen bool
	doneCmd := &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTaskBoard(cmd, func(ctx context.Context, board *services.TaskBoardService) error {
				return board.SetCompleted(ctx, args[0], !reopen)
			})
		},
	}
	doneCmd.Flags().BoolVar(&reopen, "reopen", false, "Mark the task as pending again")
	cmd.AddCommand(doneCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "priority ID PRIORITY",
		Short: "Change the priority of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, err := entities.ParseTaskPriority(args[1])
			if err != nil {
				return err
			}
			return withTaskBoard(cmd, func(ctx context.Context, board *services.TaskBoardService) error {
				return board.SetPriority(ctx, args[0], priority)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "assign ID USER_ID",
		Short: "Assign a task to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTaskBoard(cmd, func(ctx context.Context, board *services.TaskBoardService) error {
				return board.Assign(ctx, args[0], args[1])
			})
		},
	})

	return cmd
}

func withTaskBoard(cmd *cobra.Command, fn func(ctx context.Context, board *services.TaskBoardService) error) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		board := services.NewTaskBoardService(a.resources.Tasks, a.notifier, a.metrics)
		if err := board.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, board)
	})
}

func patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Browse patients",
	}

	var f filters.PatientFilter
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				all, err := a.resources.Patients.GetAll(ctx)
				if err != nil {
					return err
				}
				if len(all) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No patients registered.")
					return nil
				}
				patients := f.Apply(all)
				if len(patients) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No patients match.")
					return nil
				}
				w := table(cmd.OutOrStdout(), "ID", "NAME", "DOCUMENT", "PHONE", "EMAIL")
				for _, p := range patients {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Document, p.Phone, p.Email)
				}
				return w.Flush()
			})
		},
	}
	listCmd.Flags().StringVarP(&f.Query, "query", "q", "", "Search name, document, email or phone")
	listCmd.Flags().StringVar(&f.AgreementID, "agreement", filters.All, "Agreement ID")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "history ID",
		Short: "Show a patient's history, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				history, err := a.resources.Patients.GetHistory(ctx, args[0])
				if err != nil {
					return err
				}
				if len(history) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No history recorded.")
					return nil
				}
				w := table(cmd.OutOrStdout(), "DATE", "DESCRIPTION")
				for _, h := range filters.SortByDateDesc(history, time.Local) {
					fmt.Fprintf(w, "%s\t%s\n", h.Date, h.Description)
				}
				return w.Flush()
			})
		},
	})

	return cmd
}

func ledgerCmd() *cobra.Command {
	var f filters.TransactionFilter
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show transactions and totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				f.Range.Location = time.Local
				all, err := a.resources.Transactions.GetAll(ctx)
				if err != nil {
					return err
				}
				txs := f.Apply(all)
				out := cmd.OutOrStdout()
				if len(txs) == 0 {
					fmt.Fprintln(out, "No transactions match.")
				} else {
					w := table(out, "DATE", "KIND", "AMOUNT", "CATEGORY", "DESCRIPTION")
					for _, tx := range txs {
						fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", tx.Date, tx.Kind, tx.Amount, tx.Category, tx.Description)
					}
					if err := w.Flush(); err != nil {
						return err
					}
				}
				totals := filters.SumTransactions(txs)
				fmt.Fprintf(out, "\nIncome %.2f  Expense %.2f  Balance %.2f\n", totals.Income, totals.Expense, totals.Balance)
				return nil
			})
		},
	}
	addRangeFlags(cmd, &f.Range)
	cmd.Flags().StringVar(&f.Kind, "kind", filters.All, "income, expense or all")
	cmd.Flags().StringVar(&f.Category, "category", filters.All, "Category")
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "Free-text search")
	return cmd
}

func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Print a quote for the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				q := a.quotes.Random(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "%q\n  - %s\n", q.Text, q.Author)
				return nil
			})
		},
	}
}

func watchCmd() *cobra.Command {
	var only []string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Invalidate the shared cache and print changes as other clients write",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				return watch(ctx, a, only, cmd.OutOrStdout(), cmd.ErrOrStderr())
			})
		},
	}
	cmd.Flags().StringSliceVar(&only, "resource", nil, "only print changes to these resources (repeatable)")
	return cmd
}

// watch keeps the cache fresh and prints resource events until ctx is done.
// Without Redis the bus is private to this process, so nothing written
// elsewhere shows up.
func watch(ctx context.Context, a *app, only []string, out, errOut io.Writer) error {
	if !a.shared {
		log.Warn().Msg("watch is running without redis")
		fmt.Fprintln(errOut, "warning: the cache is not shared; set REDIS_ENABLED=true to see changes made by other clinicctl processes")
	}

	invalidation := services.NewCacheInvalidationService(a.cache, a.eventBus)
	if err := invalidation.Start(); err != nil {
		return err
	}
	defer invalidation.Stop()

	changes, err := a.eventBus.Subscribe(ctx, providers.EventChannelUpdates, only...)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Watching for changes, press Ctrl+C to stop.")
	for event := range changes {
		fmt.Fprintf(out, "%s %s %s %s\n", event.Timestamp.Format(time.RFC3339), event.Resource, event.EventType, event.EntityID)
	}
	return nil
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the shared cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "warm",
		Short: "Preload lookup lists into the shared cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				warming := services.NewCacheWarmingService(a.resources.Professionals, a.resources.Specialties, a.resources.Agreements, a.resources.Users)
				return warming.WarmCache(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				return services.NewCacheInvalidationService(a.cache, a.eventBus).InvalidateAll(ctx)
			})
		},
	})

	return cmd
}

func addRangeFlags(cmd *cobra.Command, r *filters.DateRange) {
	cmd.Flags().StringVar(&r.From, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&r.To, "to", "", "Last day, YYYY-MM-DD")
}

func table(out io.Writer, headers ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, h)
	}
	fmt.Fprintln(w)
	return w
}

