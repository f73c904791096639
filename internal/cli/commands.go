package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/todo/internal/mcp"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/todo"
	"github.com/tgienger/todo/internal/ui"
)

func (r *Runner) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.Stderr)
	return fs
}

// positionalID requires exactly one integer argument
func positionalID(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one task ID: %w", models.ErrValidation)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid task ID %q: %w", args[0], models.ErrValidation)
	}
	return id, nil
}

// taskFlags are the editable fields shared by add and update
type taskFlags struct {
	desc     *optionalString
	tags     *optionalString
	due      *optionalString
	priority *optionalString
}

func addTaskFlags(fs *flag.FlagSet) taskFlags {
	return taskFlags{
		desc:     stringFlag(fs, "desc", "d", "task description"),
		tags:     stringFlag(fs, "tags", "t", "comma-separated tags"),
		due:      stringFlag(fs, "due", "u", "due date: YYYY-MM-DD, today, tomorrow, week, month, quarter or year"),
		priority: stringFlag(fs, "priority", "p", "priority: low, medium or high"),
	}
}

func (f taskFlags) resolveDue(repo *todo.Repository) (*string, error) {
	if f.due.val == nil {
		return nil, nil
	}
	due, err := todo.ResolveDue(*f.due.val, repo.Now())
	if err != nil {
		return nil, err
	}
	return &due, nil
}

func (f taskFlags) parsePriority() (*models.Priority, error) {
	if f.priority.val == nil {
		return nil, nil
	}
	p, err := models.ParsePriority(*f.priority.val)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Runner) runAdd(ctx context.Context, s *session, args []string) error {
	fs := r.newFlagSet("add")
	tf := addTaskFlags(fs)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("expected exactly one task name: %w", models.ErrValidation)
	}

	due, err := tf.resolveDue(s.repo)
	if err != nil {
		return err
	}
	priority, err := tf.parsePriority()
	if err != nil {
		return err
	}

	in := models.CreateTask{
		Name:     positional[0],
		Desc:     tf.desc.val,
		DueDate:  due,
		Priority: priority,
	}
	if tf.tags.val != nil {
		in.Tags = models.ParseTags(*tf.tags.val)
	}

	task, err := s.repo.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Stdout, "Task created successfully with ID: %d\n\nTask details:\n%s\n", task.ID, formatDetails(task))
	return nil
}

func (r *Runner) runGet(ctx context.Context, s *session, args []string) error {
	fs := r.newFlagSet("get")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	id, err := positionalID(positional)
	if err != nil {
		return err
	}

	task, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &exitError{msg: fmt.Sprintf("Task with ID %d not found", id)}
	}
	fmt.Fprintln(r.Stdout, formatDetails(task))
	return nil
}

func (r *Runner) runUpdate(ctx context.Context, s *session, args []string) error {
	fs := r.newFlagSet("update")
	name := stringFlag(fs, "name", "n", "new task name")
	tf := addTaskFlags(fs)
	status := stringFlag(fs, "status", "s", "status: active, completed or archived")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	id, err := positionalID(positional)
	if err != nil {
		return err
	}

	in := models.UpdateTask{ID: id, Name: name.val, Desc: tf.desc.val}
	if tf.tags.val != nil {
		// an empty list clears the tags
		in.Tags = models.ParseTags(*tf.tags.val)
		if in.Tags == nil {
			in.Tags = []string{}
		}
	}
	if in.DueDate, err = tf.resolveDue(s.repo); err != nil {
		return err
	}
	if in.Priority, err = tf.parsePriority(); err != nil {
		return err
	}
	if status.val != nil {
		st, err := models.ParseStatus(*status.val)
		if err != nil {
			return err
		}
		in.Status = &st
	}

	task, err := s.repo.Update(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Stdout, "Task %d updated successfully\n\nUpdated task details:\n%s\n", task.ID, formatDetails(task))
	return nil
}

func (r *Runner) runFinish(ctx context.Context, s *session, args []string) error {
	fs := r.newFlagSet("finish")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	id, err := positionalID(positional)
	if err != nil {
		return err
	}

	task, err := s.repo.Finish(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Stdout, "Task %d marked as completed\n\nUpdated task details:\n%s\n", task.ID, formatDetails(task))
	return nil
}

func (r *Runner) runDelete(ctx context.Context, s *session, args []string) error {
	fs := r.newFlagSet("delete")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	id, err := positionalID(positional)
	if err != nil {
		return err
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return &exitError{msg: fmt.Sprintf("Task with ID %d not found", id)}
	}
	fmt.Fprintf(r.Stdout, "Task %d deleted successfully\n", id)
	return nil
}

func (r *Runner) runList(ctx context.Context, s *session, args []string) error {
	fs := r.newFlagSet("list")
	keyword := stringFlag(fs, "keyword", "k", "match name or description (case-insensitive)")
	tags := stringFlag(fs, "tags", "t", "comma-separated tags; any match")
	priority := stringFlag(fs, "priority", "p", "priority: low, medium or high")
	status := stringFlag(fs, "status", "s", "status: active (default), completed or archived")
	rng := stringFlag(fs, "range", "r", "due range: all, today, tomorrow, day, week, month, quarter or year")
	orderBy := stringFlag(fs, "orderby", "o", "sort key: due-date (default), priority, id or created-at")
	order := stringFlag(fs, "order", "d", "sort order: asc (default) or desc")
	limit := intFlag(fs, "limit", "l", "maximum tasks to show (default 10, 0 for all)")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("unexpected argument %q: %w", positional[0], models.ErrValidation)
	}

	q := models.ListTasks{
		Keyword: keyword.String(),
		Range:   models.Range(rng.String()),
		OrderBy: models.OrderBy(orderBy.String()),
		Order:   models.Order(order.String()),
		Limit:   limit.val,
	}
	if tags.val != nil {
		q.Tags = models.ParseTags(*tags.val)
	}
	if priority.val != nil {
		p, err := models.ParsePriority(*priority.val)
		if err != nil {
			return err
		}
		q.Priority = &p
	}
	if status.val != nil {
		st, err := models.ParseStatus(*status.val)
		if err != nil {
			return err
		}
		q.Status = &st
	}

	tasks, err := s.repo.List(ctx, q)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(r.Stdout, "No tasks found")
		return nil
	}
	fmt.Fprintf(r.Stdout, "Found %d tasks:\n\n%s\n", len(tasks), formatTable(tasks, r.tableWidth()))
	return nil
}

func (r *Runner) runBrowse(ctx context.Context, s *session, args []string) error {
	fs := r.newFlagSet("browse")
	if err := fs.Parse(args); err != nil {
		return err
	}
	err := ui.Run(ctx, s.repo, s.settings, tea.WithInput(r.Stdin), tea.WithOutput(r.Stdout))
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (r *Runner) runMCP(ctx context.Context, s *session, args []string) error {
	fs := r.newFlagSet("mcp")
	if err := fs.Parse(args); err != nil {
		return err
	}
	server := mcp.NewServer(mcp.ServerConfig{Name: "mcp-todo", Version: r.Version}, s.repo, s.logger)
	err := server.ServeStdio(ctx, r.Stdin, r.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
