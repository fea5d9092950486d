package rodriver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"visawatch/internal/driver"
	"visawatch/internal/slot"
	"visawatch/pkg/logx"
)

const (
	facilitySelectID = "appointments_consulate_appointment_facility_id"
	dateInputID      = "appointments_consulate_appointment_date"
	timeSelectID     = "appointments_consulate_appointment_time"
	datepickerGroup  = ".ui-datepicker-group"
)

// FetchSlots opens the appointments page and scrapes the available dates
// for facilityID from the jQuery UI datepicker.
//
// The calendar renders unpredictably: the page may show a busy banner, show
// the date widgets without the picker, or render nothing at all for a
// while. Each refresh attempt selects the facility and then waits for one
// of those states; busy triggers a backoff and reload. After
// maxRefreshAttempts the final state decides between *driver.BusyError and
// a generic failure.
func (s *session) FetchSlots(ctx context.Context, appointmentsURL string, facilityID, maxRefreshAttempts int) (slot.Set, error) {
	page := s.page
	if page == nil {
		p, err := s.browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			return nil, fmt.Errorf("open page: %w", err)
		}
		page = p
		s.page = p
	}
	if err := page.Navigate(appointmentsURL); err != nil {
		return nil, fmt.Errorf("open appointments page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("load appointments page: %w", err)
	}

	for attempt := 1; attempt <= maxRefreshAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.selectFacility(ctx, page, facilityID); err != nil {
			return nil, fmt.Errorf("select facility %d: %w", facilityID, err)
		}

		state, err := s.waitCalendarOrBusy(ctx, page)
		if err != nil {
			return nil, err
		}

		switch state {
		case pageCalendar:
			return s.scrapeCalendar(page, facilityID)
		case pageBusy:
			s.log.Info("appointment site is busy, refreshing",
				logx.Int("attempt", attempt), logx.Int("max_attempts", maxRefreshAttempts))
			sleepCtx(ctx, busyBackoff(attempt))
		default:
			s.log.Debug("calendar did not open, refreshing", logx.Int("attempt", attempt))
			sleepCtx(ctx, time.Second)
		}

		if attempt < maxRefreshAttempts {
			if err := page.Reload(); err != nil {
				return nil, fmt.Errorf("page reload (browser session lost?): %w", err)
			}
			if err := page.WaitLoad(); err != nil {
				return nil, fmt.Errorf("reload wait: %w", err)
			}
		}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page after refresh attempts: %w", err)
	}
	if driver.BusyMarkerPresent(html) {
		return nil, &driver.BusyError{Msg: "site reports 'system busy, try again later'"}
	}
	return nil, fmt.Errorf("calendar did not appear after %d refresh attempts", maxRefreshAttempts)
}

type pageState int

const (
	pageUnknown pageState = iota
	pageBusy
	pageCalendar
)

// waitCalendarOrBusy polls the page until the datepicker or the busy
// banner shows up, clicking the date input along the way (the picker often
// opens only on click). Returns pageUnknown on timeout.
func (s *session) waitCalendarOrBusy(ctx context.Context, page *rod.Page) (pageState, error) {
	deadline := time.Now().Add(s.cfg.WaitTimeout)
	for {
		html, err := page.HTML()
		if err != nil {
			return pageUnknown, fmt.Errorf("read page: %w", err)
		}
		if driver.BusyMarkerPresent(html) {
			return pageBusy, nil
		}
		if has, err := elementExists(page, datepickerGroup); err == nil && has {
			return pageCalendar, nil
		}
		if has, err := elementExists(page, "#"+dateInputID); err == nil && has {
			s.openDatepicker(page)
			if has, err := elementExists(page, datepickerGroup); err == nil && has {
				return pageCalendar, nil
			}
		}
		if time.Now().After(deadline) {
			return pageUnknown, nil
		}
		if err := sleepCtx(ctx, time.Second); err != nil {
			return pageUnknown, err
		}
	}
}

// openDatepicker clicks the date input so the picker renders. A plain
// click can be swallowed by overlays, so fall back to a JS click.
func (s *session) openDatepicker(page *rod.Page) {
	el, err := page.Timeout(2 * time.Second).Element("#" + dateInputID)
	if err != nil {
		return
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		if _, err := el.Eval(`() => this.click()`); err != nil {
			s.log.Debug("date input click failed", logx.Err(err))
			return
		}
	}
	time.Sleep(500 * time.Millisecond)
}

// selectFacility picks the consulate facility in the page's select box.
// The select may be disabled and its options may load late.
func (s *session) selectFacility(ctx context.Context, page *rod.Page, facilityID int) error {
	bounded := page.Timeout(s.cfg.WaitTimeout)
	sel, err := bounded.Element("#" + facilitySelectID)
	if err != nil {
		return fmt.Errorf("facility select not found: %w", err)
	}

	value := strconv.Itoa(facilityID)
	deadline := time.Now().Add(s.cfg.WaitTimeout)
	for {
		ready, err := facilityOptionReady(sel, value)
		if err != nil {
			return err
		}
		if ready {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("facility option %s did not appear", value)
		}
		if err := sleepCtx(ctx, time.Second); err != nil {
			return err
		}
	}

	// Already selected? Selecting again would just churn the page.
	current, err := sel.Property("value")
	if err == nil && current.String() == value {
		return nil
	}

	if err := sel.Select([]string{fmt.Sprintf(`[value=%q]`, value)}, true, rod.SelectorTypeCSSSector); err != nil {
		return fmt.Errorf("select option %s: %w", value, err)
	}
	// The page listens for a change event to load the calendar.
	if _, err := sel.Eval(`() => this.dispatchEvent(new Event('change', {bubbles: true}))`); err != nil {
		return fmt.Errorf("dispatch change event: %w", err)
	}
	return nil
}

// facilityOptionReady reports whether the select is enabled and carries the
// wanted option value.
func facilityOptionReady(sel *rod.Element, value string) (bool, error) {
	disabled, err := sel.Property("disabled")
	if err != nil {
		return false, fmt.Errorf("read select state: %w", err)
	}
	if disabled.Bool() {
		return false, nil
	}
	options, err := sel.Elements("option")
	if err != nil {
		return false, fmt.Errorf("read select options: %w", err)
	}
	for _, opt := range options {
		v, err := opt.Attribute("value")
		if err != nil {
			continue
		}
		if v != nil && *v == value {
			return true, nil
		}
	}
	return false, nil
}

// scrapeCalendar walks the datepicker months and collects selectable days.
func (s *session) scrapeCalendar(page *rod.Page, facilityID int) (slot.Set, error) {
	slots := slot.NewSet()

	for month := 0; month < s.cfg.MonthsAhead; month++ {
		groups, err := page.Elements(datepickerGroup)
		if err != nil || len(groups) == 0 {
			break
		}

		for _, group := range groups {
			monthName, year, err := groupHeader(group)
			if err != nil {
				continue
			}
			days, err := group.Elements(`td[data-handler="selectDay"]`)
			if err != nil {
				continue
			}
			for _, day := range days {
				link, err := day.Element(".ui-state-default")
				if err != nil {
					continue
				}
				text, err := link.Text()
				if err != nil {
					continue
				}
				iso, err := driver.ParseCalendarDate(text, monthName, year)
				if err != nil {
					s.log.Debug("unparsable calendar day", logx.String("day", text), logx.Err(err))
					continue
				}
				slots.Add(slot.Slot{DateISO: iso, FacilityID: facilityID})
			}
		}

		next, err := page.Timeout(10 * time.Second).Element(".ui-datepicker-next")
		if err != nil {
			break
		}
		if err := next.Click(proto.InputMouseButtonLeft, 1); err != nil {
			break
		}
		time.Sleep(700 * time.Millisecond)
	}

	return slots, nil
}

func groupHeader(group *rod.Element) (month, year string, err error) {
	monthEl, err := group.Element(".ui-datepicker-month")
	if err != nil {
		return "", "", err
	}
	month, err = monthEl.Text()
	if err != nil {
		return "", "", err
	}
	yearEl, err := group.Element(".ui-datepicker-year")
	if err != nil {
		return "", "", err
	}
	year, err = yearEl.Text()
	if err != nil {
		return "", "", err
	}
	return month, year, nil
}

func elementExists(page *rod.Page, selector string) (bool, error) {
	els, err := page.Elements(selector)
	if err != nil {
		return false, err
	}
	return len(els) > 0, nil
}

func busyBackoff(attempt int) time.Duration {
	d := time.Duration(2*attempt) * time.Second
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
