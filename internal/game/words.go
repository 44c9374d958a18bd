package game

import "math/rand"

// words is the fixed pool the secret word is drawn from each round.
var words = []string{
	"Apple", "Banana", "Dragon", "Elephant", "Fire", "Guitar", "House", "Island", "Jungle", "Kangaroo",
	"Lemon", "Mountain", "Notebook", "Ocean", "Piano", "Queen", "Rocket", "Sun", "Tiger", "Umbrella",
	"Violin", "Whale", "Xylophone", "Yacht", "Zebra", "Airplane", "Bridge", "Castle", "Desert", "Eagle",
	"Forest", "Garden", "Hammer", "Ice", "Jacket", "Kite", "Lizard", "Mirror", "Needle", "Owl",
	"Pizza", "Quilt", "Robot", "Snake", "Telephone", "Unicorn", "Vampire", "Window", "X-ray", "Yo-yo",
	"Anvil", "Broom", "Cactus", "Dolphin", "Engine", "Fountain", "Glacier", "Helmet", "Igloo", "Jigsaw",
	"Keyboard", "Lantern", "Magnet", "Nail", "Oasis", "Parrot", "Quiver", "Rudder", "Saddle", "Telescope",
	"UFO", "Valve", "Wrench", "Xenon", "Yarn", "Zipper", "Anchor", "Barrel", "Compass", "Dagger",
	"Easel", "Falcon", "Goggles", "Harp", "Ink", "Jewel", "Kettle", "Lasso", "Muzzle", "Net",
	"Oar", "Plow", "Quill", "Rope", "Sieve", "Tongs", "Urb", "Vise", "Wagon", "Xeric",
	"Yoke", "Zest", "Amulet", "Bellows", "Chisel", "Drill", "Emery", "Flail", "Gimlet", "Hinge",
}

func randomWord() string {
	return words[rand.Intn(len(words))]
}
