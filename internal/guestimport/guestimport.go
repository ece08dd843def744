// Package guestimport loads and repairs guest lists in bulk for the
// weddingctl tool.
package guestimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Kerhoff/wedding/internal/models"
	"github.com/Kerhoff/wedding/internal/repository"
	"github.com/Kerhoff/wedding/internal/rsvp"
)

const (
	columnFirstName = "First Name"
	columnLastName  = "Last Name"
)

var (
	nonNameChars = regexp.MustCompile(`[^a-z\s-]`)
	separators   = regexp.MustCompile(`[\s-]+`)
)

// Row is one guest read from a guest list.
type Row struct {
	FirstName string
	LastName  string
}

// FullName joins the row's names the way guests are matched against groupings.
func (r Row) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Groupings maps a family label to the full names of its members.
type Groupings map[string][]string

// Report counts what a bulk operation did.
type Report struct {
	Created  int
	Existing int
	Updated  int
}

// Importer writes guest lists through a guest repository.
type Importer struct {
	guests repository.GuestAdminRepository
	logger *logrus.Logger
}

func New(guests repository.GuestAdminRepository, logger *logrus.Logger) *Importer {
	return &Importer{guests: guests, logger: logger}
}

// ReadCSV parses a guest list with "First Name" and "Last Name" columns.
// A leading UTF-8 byte order mark is ignored and blank rows are skipped.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	firstCol, lastCol := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case columnFirstName:
			firstCol = i
		case columnLastName:
			lastCol = i
		}
	}
	if firstCol < 0 || lastCol < 0 {
		return nil, fmt.Errorf("csv must have %q and %q columns", columnFirstName, columnLastName)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}
		if firstCol >= len(record) || lastCol >= len(record) {
			continue
		}
		row := Row{FirstName: strings.TrimSpace(record[firstCol]), LastName: strings.TrimSpace(record[lastCol])}
		if row.FirstName == "" && row.LastName == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadGroupings parses a YAML document of family label to member names.
func ReadGroupings(r io.Reader) (Groupings, error) {
	var groups Groupings
	if err := yaml.NewDecoder(r).Decode(&groups); err != nil {
		if errors.Is(err, io.EOF) {
			return Groupings{}, nil
		}
		return nil, fmt.Errorf("failed to parse groupings: %w", err)
	}
	return groups, nil
}

// assign gives every family a fresh group id, keyed by lowercase full name.
func (g Groupings) assign() (map[string]uuid.UUID, error) {
	byName := make(map[string]uuid.UUID)
	var result *multierror.Error
	for family, members := range g {
		id := uuid.New()
		for _, name := range members {
			key := strings.ToLower(strings.TrimSpace(name))
			if _, dup := byName[key]; dup {
				result = multierror.Append(result, fmt.Errorf("%s listed in more than one family (%s)", name, family))
				continue
			}
			byName[key] = id
		}
	}
	return byName, result.ErrorOrNil()
}

// Load creates every row that does not exist yet. Members of a family share
// one group id; everyone else gets their own. Rows that fail are reported
// together after the rest have been written.
func (im *Importer) Load(ctx context.Context, rows []Row, groups Groupings) (Report, error) {
	var report Report
	families, err := groups.assign()
	if err != nil {
		return report, err
	}

	var result *multierror.Error
	for _, row := range rows {
		if row.FirstName == "" || row.LastName == "" {
			result = multierror.Append(result, fmt.Errorf("guest %q: first and last name are required", row.FullName()))
			continue
		}

		groupID, ok := families[strings.ToLower(row.FullName())]
		if !ok {
			groupID = uuid.New()
		}
		created, err := im.getOrCreate(ctx, row, groupID)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if created {
			report.Created++
		} else {
			report.Existing++
		}
	}
	return report, result.ErrorOrNil()
}

// Add creates a single guest. A nil group id starts a new group.
func (im *Importer) Add(ctx context.Context, row Row, groupID uuid.UUID) (*models.Guest, error) {
	if row.FirstName == "" || row.LastName == "" {
		return nil, errors.New("first and last name are required")
	}
	if groupID == uuid.Nil {
		groupID = uuid.New()
	}
	guest, err := im.guests.Create(ctx, &models.Guest{GroupID: groupID, FirstName: row.FirstName, LastName: row.LastName})
	if err != nil {
		return nil, fmt.Errorf("failed to add %s: %w", row.FullName(), err)
	}
	im.logger.WithFields(logrus.Fields{"guest_id": guest.ID, "group_id": groupID}).Infof("Added %s", guest.FullName())
	return guest, nil
}

func (im *Importer) getOrCreate(ctx context.Context, row Row, groupID uuid.UUID) (bool, error) {
	existing, err := im.guests.FindByName(ctx, row.FirstName, row.LastName)
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", row.FullName(), err)
	}
	if len(existing) > 0 {
		im.logger.Debugf("Exists: %s", row.FullName())
		return false, nil
	}
	if _, err := im.guests.Create(ctx, &models.Guest{GroupID: groupID, FirstName: row.FirstName, LastName: row.LastName}); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", row.FullName(), err)
	}
	im.logger.Debugf("Added: %s", row.FullName())
	return true, nil
}

// Clear removes every guest.
func (im *Importer) Clear(ctx context.Context) (int64, error) {
	n, err := im.guests.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear guests: %w", err)
	}
	return n, nil
}

// Regroup moves the named guests into one group. A nil group id creates a
// new one. Every name must match exactly one guest; nothing is moved
// otherwise.
func (im *Importer) Regroup(ctx context.Context, groupID uuid.UUID, names []Row) (uuid.UUID, error) {
	if len(names) == 0 {
		return uuid.Nil, errors.New("no guests to regroup")
	}
	if groupID == uuid.Nil {
		groupID = uuid.New()
	}

	var (
		result *multierror.Error
		guests []*models.Guest
	)
	for _, name := range names {
		found, err := im.guests.FindByName(ctx, name.FirstName, name.LastName)
		switch {
		case err != nil:
			result = multierror.Append(result, fmt.Errorf("failed to look up %s: %w", name.FullName(), err))
		case len(found) == 0:
			result = multierror.Append(result, fmt.Errorf("%s: %w", name.FullName(), repository.ErrNotFound))
		case len(found) > 1:
			result = multierror.Append(result, fmt.Errorf("%s matches %d guests", name.FullName(), len(found)))
		default:
			guests = append(guests, found[0])
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return uuid.Nil, err
	}

	for _, g := range guests {
		g.GroupID = groupID
		if _, err := im.guests.UpdateProfile(ctx, g); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to move %s: %w", g.FullName(), err))
		}
	}
	return groupID, result.ErrorOrNil()
}

// FixEmails fills blank emails with a placeholder built from the guest's name.
func (im *Importer) FixEmails(ctx context.Context) (Report, error) {
	var report Report
	guests, err := im.guests.List(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list guests: %w", err)
	}

	var result *multierror.Error
	for _, g := range guests {
		if strings.TrimSpace(g.Email) != "" {
			continue
		}
		g.Email = PlaceholderEmail(g.FirstName, g.LastName)
		if _, err := im.guests.Update(ctx, g); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to update %s: %w", g.FullName(), err))
			continue
		}
		im.logger.Infof("Updated %s -> %s", g.FullName(), g.Email)
		report.Updated++
	}
	return report, result.ErrorOrNil()
}

// PlaceholderEmail builds first.last@placeholder.com from a guest's names.
func PlaceholderEmail(firstName, lastName string) string {
	return emailPart(firstName) + "." + emailPart(lastName) + "@" + rsvp.PlaceholderDomain
}

func emailPart(name string) string {
	cleaned := nonNameChars.ReplaceAllString(strings.ToLower(name), "")
	cleaned = separators.ReplaceAllString(cleaned, ".")
	return strings.Trim(cleaned, ".")
}

// ParseName splits "First Last" at the final space so multi-word first
// names such as "Mary Anne Miller" keep together.
func ParseName(full string) (Row, error) {
	full = strings.Join(strings.Fields(full), " ")
	i := strings.LastIndex(full, " ")
	if i <= 0 {
		return Row{}, fmt.Errorf("%q must be a first and last name", full)
	}
	return Row{FirstName: full[:i], LastName: full[i+1:]}, nil
}
