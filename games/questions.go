package games

// Built-in couples trivia bank. Content lives in the binary for now; a CMS-backed
// bank would slot in behind drawQuestions without touching the rules.
var questionBank = []TriviaQuestion{
	{
		Prompt:  "Which hormone is nicknamed the \"love hormone\"?",
		Options: []string{"Dopamine", "Oxytocin", "Cortisol", "Melatonin"},
		Answer:  1,
	},
	{
		Prompt:  "Which anniversary is traditionally celebrated with paper gifts?",
		Options: []string{"1st", "5th", "10th", "25th"},
		Answer:  0,
	},
	{
		Prompt:  "In Greek mythology, who is the goddess of love?",
		Options: []string{"Athena", "Hera", "Aphrodite", "Artemis"},
		Answer:  2,
	},
	{
		Prompt:  "Valentine's Day falls on which date?",
		Options: []string{"February 12", "February 14", "February 16", "March 14"},
		Answer:  1,
	},
	{
		Prompt:  "Which city is known as the \"City of Love\"?",
		Options: []string{"Venice", "Vienna", "Paris", "Prague"},
		Answer:  2,
	},
	{
		Prompt:  "A 25th wedding anniversary is associated with which material?",
		Options: []string{"Gold", "Silver", "Pearl", "Ruby"},
		Answer:  1,
	},
	{
		Prompt:  "Which Shakespeare play features the lovers of Verona?",
		Options: []string{"Hamlet", "Othello", "Macbeth", "Romeo and Juliet"},
		Answer:  3,
	},
	{
		Prompt:  "Cupid is the Roman counterpart of which Greek god?",
		Options: []string{"Eros", "Apollo", "Hermes", "Ares"},
		Answer:  0,
	},
	{
		Prompt:  "Locking a padlock on a bridge is a couple's tradition that began on which river?",
		Options: []string{"Thames", "Seine", "Danube", "Tiber"},
		Answer:  1,
	},
	{
		Prompt:  "Which flower is most associated with romance?",
		Options: []string{"Tulip", "Daisy", "Red rose", "Sunflower"},
		Answer:  2,
	},
	{
		Prompt:  "The Taj Mahal was built as a monument to what?",
		Options: []string{"Victory in war", "A lost love", "A coronation", "A harvest festival"},
		Answer:  1,
	},
	{
		Prompt:  "\"Love is patient, love is kind\" comes from which book of the Bible?",
		Options: []string{"Genesis", "Psalms", "1 Corinthians", "Revelation"},
		Answer:  2,
	},
}
