// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package mood

// CopingStrategy is a short exercise for managing ADHD symptoms in the moment
type CopingStrategy struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CopingTip accompanies the strategy list
const CopingTip = "These strategies can help you manage ADHD symptoms in the moment."

var copingStrategies = []CopingStrategy{
	{
		ID:          "breathing",
		Title:       "Box breathing",
		Description: "Breathe in for 4 counts, hold for 4, breathe out for 4, pause for 4. Repeat 5 times.",
	},
	{
		ID:          "pomodoro",
		Title:       "Pomodoro technique",
		Description: "25 minutes of work, 5 minutes of rest. After 4 cycles, take a longer 15-30 minute break.",
	},
	{
		ID:          "bodyscan",
		Title:       "Body scan",
		Description: "Bring awareness to each part of your body from feet to head. Notice tension and let it go.",
	},
	{
		ID:          "energyboost",
		Title:       "Energy boost",
		Description: "20 jumping jacks, 10 squats, 10 seconds of running in place. Repeat if needed to wake your body up.",
	},
}

// CopingStrategies returns the built-in quick strategies
func CopingStrategies() []CopingStrategy {
	out := make([]CopingStrategy, len(copingStrategies))
	copy(out, copingStrategies)
	return out
}

// FindCopingStrategy looks a strategy up by id
func FindCopingStrategy(id string) (CopingStrategy, bool) {
	for _, s := range copingStrategies {
		if s.ID == id {
			return s, true
		}
	}
	return CopingStrategy{}, false
}
